package app

import (
	"agentpack/internal/config"
	"agentpack/internal/pack"
)

// ResolveExportRequest merges CLI flag values with the configured [agent]
// identity and [export] source defaults. Flags always win; a flag left empty
// falls back to the config value. cwd is the working directory used when
// neither a flag nor the config names one. Name validation happens in the
// codec after merging, so a name configured under [agent] satisfies it.
func ResolveExportRequest(cfg *config.Config, cwd, name, email string, credentials, memory []string) (pack.AgentIdentity, pack.ExportOptions) {
	if name == "" {
		name = cfg.Agent.Name
	}
	if email == "" {
		email = cfg.Agent.Email
	}
	if len(credentials) == 0 {
		credentials = cfg.Export.CredentialPaths
	}
	if len(memory) == 0 {
		memory = cfg.Export.MemoryPaths
	}

	workDir := cfg.Export.WorkDir
	if workDir == "" {
		workDir = cwd
	}

	identity := pack.AgentIdentity{Name: name, Email: email}
	opts := pack.ExportOptions{
		WorkDir:         workDir,
		CredentialPaths: credentials,
		MemoryPaths:     memory,
	}
	return identity, opts
}
