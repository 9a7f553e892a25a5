// Package fetcher downloads a single image URL and saves it to disk.
//
// Two strategies decide what is written. PreserveStrategy keeps the bytes as
// served and derives the extension from the URL. JPEGStrategy decodes the
// image and re-encodes it as JPEG, which normalizes mixed result sets.
package fetcher
