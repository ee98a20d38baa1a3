// Package unit is the boundary to compute units: the sandboxed code behind each
// node.
//
// Loading and running are separate concerns. A Loader turns a node's source
// reference into code bytes (local files, "s3://" objects, optionally behind an
// LRU cache). A Host runs one exported function of that code with a JSON input
// and returns the JSON output; ExtismHost does this for WebAssembly units.
//
// The Invoker ties the two together for a node. The entry point it calls is the
// node's name, so several nodes can share one binary and still select distinct
// behavior. Units may also export "describe_node", which returns their declared
// inputs and outputs; it is only queried for tooling and validation and never
// during a run.
package unit
