package tools

import (
	"gozen/internal/config"
	"gozen/internal/security"
)

// NewDefaultRegistry registers the full tool suite against the given
// workspace guard.
func NewDefaultRegistry(guard *security.Guard, cfg config.ToolsConfig) *Registry {
	r := NewRegistry()

	r.MustRegister(NewFileReadTool(guard))
	r.MustRegister(NewFileWriteTool(guard))
	r.MustRegister(NewFilePatchTool(guard))
	r.MustRegister(NewFileDeleteTool(guard))
	r.MustRegister(NewFileRenameTool(guard))
	r.MustRegister(NewFileCopyTool(guard))

	r.MustRegister(NewListDirectoryTool(guard))
	r.MustRegister(NewCreateDirectoryTool(guard))
	r.MustRegister(NewFindFilesTool(guard))
	r.MustRegister(NewGrepFilesTool(guard))

	r.MustRegister(NewRunShellTool(guard, cfg.ShellTimeout))
	r.MustRegister(NewRunTestsTool(guard, cfg.ShellTimeout))
	r.MustRegister(NewInstallPackagesTool(guard, cfg.ShellTimeout))

	r.MustRegister(NewWebFetchTool(cfg.WebTimeout))
	r.MustRegister(NewWebSearchTool(cfg.WebTimeout))

	r.MustRegister(NewGitCommandTool(guard, cfg.ShellTimeout))
	r.MustRegister(NewRPCCallTool(cfg.WebTimeout))

	return r
}
