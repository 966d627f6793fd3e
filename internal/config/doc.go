// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file next to the working directory is loaded first when present.
// Every field has a default, so running without a config file polls the
// production endpoints and writes nft_data.json.
package config
