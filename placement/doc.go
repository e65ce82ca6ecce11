// Package placement implements the Searching/Ready/Placed state machine that
// decides when and where the asset appears.
//
// Transitions:
//
//	Searching --reticle visible--> Ready
//	Ready --reticle hidden--> Searching
//	Ready --confirm (asset loaded)--> Placed
//	Placed --confirm (reticle visible)--> Placed (moved)
//	Placed --reticle hidden--> Placed
//
// The asset transform changes only as the synchronous effect of a confirm;
// tracking alone never moves or hides a placed asset.
package placement
