// Package schemas embeds the JSON Schemas of the documents jobmarket reads.
package schemas

import _ "embed"

// RawRecords describes a batch of raw job records: a bare array of record
// objects, or a search response envelope carrying the array under "data".
//
//go:embed raw_records.schema.json
var RawRecords []byte
