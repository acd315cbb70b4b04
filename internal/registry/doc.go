// Package registry manages the registries templates are fetched from and
// their local checkouts under the resources root. Registries are recorded
// in registries.yaml in priority order; each is fetched by a Fetcher chosen
// from its locator (git, local directory, HTTP archive, S3 bucket).
// RemoteTemplate resolves template names across all checkouts and offers
// to download templates when none are cached.
package registry
