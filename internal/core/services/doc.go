// Package services implements the driving port interfaces.
// Services contain the core crawl logic and orchestrate
// calls to driven ports (forge clients and stores).
//
// Services never import adapters; every collaborator is a port.
package services
