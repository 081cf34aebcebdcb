// Package watch rebuilds the site when its sources change.
//
// File events are debounced into rebuild requests; an optional gocron job
// adds periodic requests. A single loop serves the requests, so builds never
// overlap, and a request arriving during a build yields one follow-up build.
package watch
