// Package ebsd implements the structured microstructure grid at the core of
// the grainmesh pipeline: lattice arithmetic for the import mapping, the
// grain registry, neighbor-vote morphology (clean, smooth, fill), small-grain
// removal, resolution resampling, domain redefinition and grip augmentation.
//
// Orientations are Bunge-convention (ZXZ) Euler triples held in radians.
// Cells with no measured grain carry VoidGrainID.
package ebsd
