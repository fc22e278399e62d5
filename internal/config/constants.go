package config

// ManifestFileName is the default generics manifest looked up by the
// CLI, searched from the working directory upward.
const ManifestFileName = "genfun.yaml"

// ManifestFileNameAlt is the accepted alternative spelling.
const ManifestFileNameAlt = "genfun.yml"
