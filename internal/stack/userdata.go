package stack

import (
	"strings"
	"text/template"

	"github.com/lithammer/dedent"
)

const userDataLog = "/var/log/user-data.log"

var userDataTemplate = template.Must(template.New("user-data").Parse(strings.TrimLeft(dedent.Dedent(`
	#!/bin/bash
	exec > {{.LogFile}} 2>&1
	set -e
	{{.PackageManager}} update -y
	{{.PackageManager}} install -y {{.Package}}
	systemctl start {{.Package}}
	systemctl enable {{.Package}}
`), "\n")))

// RenderUserData renders the boot script that installs and starts the web
// server. Output goes to /var/log/user-data.log on the instance.
func RenderUserData(in Inputs) (string, error) {
	var b strings.Builder
	err := userDataTemplate.Execute(&b, struct {
		LogFile        string
		PackageManager string
		Package        string
	}{
		LogFile:        userDataLog,
		PackageManager: in.PackageManager,
		Package:        in.WebServerPackage,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
