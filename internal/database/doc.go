// Package database provides PostgreSQL connectivity and the account
// repository.
//
// Uses pgx for connection pooling. AccountRepo stores the Instagram
// accounts the bot replies for, with access tokens encrypted at rest via
// the crypto package.
package database
