// Package files discovers the workbooks next to a configured input.
//
// It backs the missing-input diagnostic: when the configured workbook does
// not exist, the workbooks that do exist in the same directory are listed
// so the user can fix the path.
//
//	discovery := files.NewDiscovery(baseDir)
//	workbooks, err := discovery.FindWorkbooks(".")
package files
