// Package build turns a source directory into a rendered site.
//
// A build runs four stages in order: theme resolution, discovery (walking the
// source into a tree.Directory), rendering every node, and mirroring the theme
// assets. All execution paths (CLI, watch mode, tests) go through Service.
package build
