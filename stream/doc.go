// Package stream adapts stereo effect engines to github.com/gopxl/beep.
//
// A Streamer pulls frames from a source beep.Streamer and runs every frame
// through an engine's ProcessFrame before handing it downstream, so any
// engine or effect chain can sit inside a beep pipeline.
package stream
