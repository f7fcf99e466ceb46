// Package metadata is the boundary between the sorting engine and whatever
// decodes per-file metadata.
//
// A Resolver turns a source path into a TagMapping (tag keyword to string
// value) or reports, through a services.ErrNotRecognized marked error, that
// the file is not a structured-metadata file at all. The DICOM resolver reads
// the header with github.com/suyashkumar/dicom and stops before pixel data.
package metadata
