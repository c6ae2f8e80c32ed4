// Package shaders embeds the WGSL compute kernels for the particle
// simulation core.
package shaders

import (
	_ "embed"
)

//go:embed common.wgsl
var commonWGSL string

//go:embed spawn.wgsl
var spawnWGSL string

//go:embed update.wgsl
var updateWGSL string

// SpawnWGSL is the complete source of the spawn kernel (entry point "spawn").
var SpawnWGSL = commonWGSL + "\n" + spawnWGSL

// UpdateWGSL is the complete source of the update kernel (entry point "update").
var UpdateWGSL = commonWGSL + "\n" + updateWGSL
