package shaders

import (
	_ "embed"
)

//go:embed cull.wgsl
var CullWGSL string

//go:embed hwraster.wgsl
var HWRasterWGSL string

//go:embed swraster.wgsl
var SWRasterWGSL string

//go:embed resolve.wgsl
var ResolveWGSL string
