// Package remotemodule provides remote-module resource providers.
//
// A remote module publishes a manifest mapping resource paths to cached
// URLs. During resolution of a bundle asset with remote resources, the
// manager consults the provider first, then falls back to the local
// resolver, and fails permanently with the list of known candidates when
// neither has the asset.
//
// Provider failures are transient by contract: the managed asset enters
// its retryable-failure state and resolution is re-attempted the next
// time a consumer is added.
package remotemodule
