// Package storage writes downloaded images to disk.
//
// Every file gets a freshly generated UUID as its name, so concurrent or
// repeated runs into the same directory never overwrite one another. Writes
// go to a temporary file that is renamed into place once complete.
//
// Usage:
//
//	manager := storage.NewManager()
//	path, err := manager.Save("images", "png", data)
//	if err != nil {
//	    return err
//	}
package storage
