// Package files locates the deal workbook on disk.
//
// The dataset path may name a workbook or a directory. For a directory the
// most recently modified workbook is used, which lets a drop folder receive
// new exports without touching the configuration:
//
//	path, err := files.ResolveWorkbook("datasets")
//
// Office lock files (~$Book.xlsx) and non-workbook files are ignored.
package files
