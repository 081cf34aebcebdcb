// Package git reads revision information for the site source.
package git
