// Package asset loads the placeable 3D model.
//
// Loading is asynchronous: Loader.Load returns an xr.Future that the frame
// loop polls, so a slow or failing load never stalls tracking. A failed
// load is reported once and the model stays unusable for that run.
//
// GLTFLoader reads .gltf and .glb files with github.com/qmuntal/gltf and
// keeps decoded models in a Cache so a new session reuses them.
package asset
