// Package amr models GAMER adaptive-mesh snapshots and cuts axis-aligned
// slices through them.
//
// A [Snapshot] is a flat list of [Patch] values. Every patch is a cube of
// PatchSize^3 cells whose corner is stored in integer "scale" units, the
// cell width of the finest possible level. Refining a patch replaces it with
// eight sons of half the cell width, so the patches without sons tile the
// domain exactly.
//
// # Slicing
//
// [Take] samples the leaf patches onto a fixed-resolution buffer ([Slice]):
//
//	center, _ := amr.ParseCenter("c")
//	pos, _ := center.Resolve(snap)
//	sl, _ := amr.Take(snap, amr.AxisZ, pos, 800)
//	st := sl.Stats()
//
// Image axes follow the usual convention: a z slice shows (x, y), an x slice
// shows (y, z) and a y slice shows (z, x).
package amr
