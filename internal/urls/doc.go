// Package urls holds links to the controller's reference documentation.
//
// Commands print these in troubleshooting hints so that a failed
// operation points at the section of the manual that explains it.
package urls
