// Package instagram talks to the Instagram Graph API.
//
// Client sends direct message replies and comment replies on behalf of
// configured business accounts. EnvTokenResolver serves access tokens from
// the ACCOUNTS_JSON environment mapping when no database is configured.
package instagram
