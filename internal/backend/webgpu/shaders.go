//go:build windows

package webgpu

// workgroupSize is the number of threads per workgroup.
const workgroupSize = 256

// gatherShader copies 4-byte words: result[i] = source[offsets[i]].
// It serves every 4-byte dtype.
const gatherShader = `
@group(0) @binding(0) var<storage, read> source: array<u32>;
@group(0) @binding(1) var<storage, read> offsets: array<u32>;
@group(0) @binding(2) var<storage, read_write> result: array<u32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = source[offsets[idx]];
    }
}
`

// scatterShader folds float32 updates with one thread per destination.
// Updates are grouped by destination on the host: order[starts[d]..starts[d+1]]
// lists, in original order, the updates landing on d. Min/Max seed the
// sentinel and zero positions still holding it.
//
// mode: 0 = sum, 1 = min, 2 = max.
const scatterShader = `
@group(0) @binding(0) var<storage, read> updates: array<f32>;
@group(0) @binding(1) var<storage, read> order: array<u32>;
@group(0) @binding(2) var<storage, read> starts: array<u32>;
@group(0) @binding(3) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    mode: u32,
}
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.size) {
        return;
    }

    var seed: f32 = 0.0;
    if (params.mode == 1u) {
        seed = 1e12;
    } else if (params.mode == 2u) {
        seed = -1e12;
    }

    var acc = seed;
    for (var i = starts[idx]; i < starts[idx + 1u]; i = i + 1u) {
        let v = updates[order[i]];
        if (params.mode == 0u) {
            acc = acc + v;
        } else if (params.mode == 1u) {
            acc = min(acc, v);
        } else {
            acc = max(acc, v);
        }
    }

    if (params.mode != 0u && acc == seed) {
        acc = 0.0;
    }
    result[idx] = acc;
}
`
