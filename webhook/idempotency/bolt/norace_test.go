//go:build !race

package bolt

const raceDetectorEnabled = false
