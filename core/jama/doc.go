// Package jama is the REST transport client for the Jama requirements
// store. It implements the reconcile package's ItemSource and Transport
// interfaces on top of the v1 REST API, with OAuth client-credentials
// authentication, optional proxying, and token-bucket request pacing.
package jama
