// Package classify decides which file-type category a local path belongs to
// and validates whole batches against a profile's declared image type before
// any bytes leave the machine.
package classify
