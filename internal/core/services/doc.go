// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Beyond the ports they only depend on
// google/uuid for run identifiers and x/time/rate for watch throttling.
package services
