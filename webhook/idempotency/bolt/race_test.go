//go:build race

package bolt

// boltdb/bolt trips checkptr inside Bucket.write when the race detector
// instruments it, so the detector is reported here and the tests skip.
const raceDetectorEnabled = true
