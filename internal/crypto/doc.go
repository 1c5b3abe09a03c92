// Package crypto encrypts Instagram access tokens at rest.
//
// AesGcmCryptoService seals tokens with AES-256-GCM before they reach
// PostgreSQL; NoopService passes them through for dev and test setups
// without a key.
package crypto
