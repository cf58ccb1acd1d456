// Package loaders provides the loader registry and built-in loaders.
//
// A Loader turns the bytes behind a resolved asset location into a
// consumer-visible artifact. Loaders are looked up by (URL scheme, output
// type); when none is registered for a pair, the consumer fails with a
// descriptive error naming both.
//
// Built-ins:
//
//   - FileLoader reads file:// locations from disk.
//   - HTTPDownloader fetches bytes over http(s).
//   - DownloaderLoader adapts any Downloader into a bytes Loader, which
//     is how the asset-bytes store and plain HTTP byte loads are served.
//
// Decoding bytes into displayable images, video or fonts is deliberately
// out of scope; hosts register their own loaders for those output types.
package loaders
