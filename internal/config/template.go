package config

func DefaultTemplate() string {
	return `# tagforge configuration
#
# Precedence: flags > environment variables > config file > defaults
# Environment prefix: TAGFORGE_

# Directory holding forge.lock and the per-version build directories
bin_dir: ./bin

# Build mode: "git" checks each version's tag out of the repository,
# "base" builds from the version directories under bin_dir
mode: git

# C compiler for versions built without a build system
compiler: gcc

# Extra arguments passed to ./configure for autotools versions
configure_args: ""

# Make target for versions built through make. Leave unset for the
# manifest default; set to "" for a plain incremental make.
# make_target: rebuild

# Treat an unset capability threshold in forge.lock as granting the
# capability to every version
unset_grants_all: false

# Disable convenience fallbacks (auto-build on run, threshold leniency)
strict: false

# Enable debug logging
debug: false
`
}
