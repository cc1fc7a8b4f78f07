// Package backend defines the contract between ggtk surfaces and the native
// rendering backends that allocate offscreen buffers.
//
// A SurfaceHandler allocates native resources in one of four ways (default,
// compatible with a widget, with another surface, or with a drawing context),
// binds drawing contexts to them and frees them. Handlers whose native
// resources may only be destroyed on the UI thread report it through
// DisposeHandleOnUIThread; ggtk then routes their disposal through a
// resource.Manager.
//
// # Handler Registration
//
// Handlers register a factory under a name with a priority. The software
// handler registers itself on import:
//
//	import _ "github.com/gogpu/ggtk/backend/software"
//
// # Handler Selection
//
//	// Highest-priority handler that can be constructed
//	h, err := backend.Default()
//
//	// Or a specific one
//	h, err := backend.Get("software")
//
// # Implementations
//
//   - backend/software: CPU rendering into gg pixmaps; immediate disposal.
//   - backend/gpu: gg rendering presented through gpucontext textures;
//     disposal on the UI thread.
package backend
