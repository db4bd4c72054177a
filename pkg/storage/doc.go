// Package storage owns the on-disk layout of a download run.
//
// Page images are named by zero-padded page number (001.png, 002.png, ...)
// inside the output directory. A page counts as done as soon as its file
// exists, which is what makes repeated runs resume where the last one
// stopped. Writes go through a .part file and a rename so a file only appears
// under its final name once it is complete.
//
// Pages whose image path cannot be found get a screenshot and a document
// snapshot in the debug directory:
//
//	manager, err := storage.NewManager("matematika9", "png", ".", 1024)
//	if !manager.IsDownloaded(12) {
//		n, err := manager.SavePage(body, 12)
//	}
//	err = manager.SaveDebugArtifacts(13, screenshot, markup)
package storage
