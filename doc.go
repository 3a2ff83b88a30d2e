// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mdview provides the shared vocabulary for the mdview render
// pipeline: vectors, lights, cameras, materials, and the frame input
// contract between the N-dimensional geometry provider and the renderer.
//
// mdview renders interactive visualizations of geometric objects defined
// in arbitrary dimension N>=2, projected to 3D upstream and rendered here
// in real time. Three object categories are supported, each with its own
// render and shadow strategy:
//
//   - CategoryMesh: triangle geometry, shadow-mapped
//   - CategorySDF: raymarched signed distance fields, soft ray shadows
//   - CategoryVolumetric: density fields, temporally accumulated with
//     self-shadowing
//
// The pipeline itself lives in the render package. The geometry provider,
// UI state, and post-processing (tone mapping, bloom) are external
// collaborators: mdview consumes a FrameInput snapshot per frame and hands
// a composited color target plus a normal target to the downstream stage.
//
// Architecture:
//
//	provider -> FrameInput -> render.Pipeline -> output/normal targets -> post
//
// Sub-packages:
//
//   - render: targets, frame resources, passes, orchestration
//   - backend/wgpu: GPU texture backend over gogpu/wgpu
package mdview
