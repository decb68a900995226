// Package drawing defines the drawing document exchanged between the
// sketch pages, the storage folder and the stitch converter.
// A drawing is a canvas size plus an ordered list of freehand strokes
// recorded in canvas pixels.
package drawing
