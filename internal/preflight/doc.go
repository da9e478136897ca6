// Package preflight validates that native components can be located and
// look loadable before anything is opened.
//
// The package checks:
//   - The running platform has library naming conventions
//   - The resource directory exists
//   - Each component resolves to a path that exists
//   - The file's object format and architecture match the process
//   - The file exports every symbol the bindings require
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New(preflight.WithLocator(loc))
//	results := checker.RunAll(ctx)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
