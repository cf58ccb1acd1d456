// Package catalog parses asset catalogs and provides directory-backed
// bundles.
//
// A catalog is a YAML file advertising the expected dimensions of each
// asset in a bundle:
//
//	assets:
//	  icon.png:
//	    width: 24
//	    height: 24
//	  splash.png:
//	    width: 1024
//	    height: 768
//
// Expected dimensions let observers reserve layout space before the asset
// finishes loading. They are advisory; loaders are free to produce
// artifacts of any size.
//
// DirBundle maps a directory on disk to a bundle whose assets live under
// res/, and BundleSet aggregates bundles behind the BundleProvider and
// LocalResolver collaborator interfaces.
package catalog
