// Package store provides the in-memory asset bytes store.
//
// BytesStore registers caller-supplied payloads under generated
// asset-bytes:// URLs; such assets then flow through the regular
// resolution and loading pipeline like any other URL asset, with the
// store itself acting as the downloader for its scheme. Payloads are
// unregistered when the managed asset behind their URL is evicted.
package store
