package menu

import (
	"bytes"
	"text/template"

	"pxelab/internal/errors"
	"pxelab/internal/netutil"
)

// dnsmasq runs as a proxy DHCP next to any existing DHCP server on the
// network, and serves the TFTP root. port=0 disables its DNS side.
const dnsmasqConf = `# Generated by pxelab. This file is rewritten on every run.
port=0
{{ if .Interface }}interface={{ .Interface }}
bind-interfaces
{{ end }}dhcp-range={{ .Address }},proxy
dhcp-boot=pxelinux.0
pxe-service=x86PC,"Network boot",pxelinux
enable-tftp
tftp-root={{ .TFTPRoot }}
log-facility={{ .LogFile }}
log-dhcp
`

var dnsmasqTmpl = template.Must(template.New("dnsmasq").Parse(dnsmasqConf))

// Dnsmasq renders the DHCP/TFTP daemon configuration.
func Dnsmasq(params *netutil.Params, tftpRoot, logFile string) (string, error) {
	var buf bytes.Buffer
	err := dnsmasqTmpl.Execute(&buf, struct {
		Interface string
		Address   string
		TFTPRoot  string
		LogFile   string
	}{params.Interface, params.Address, tftpRoot, logFile})
	if err != nil {
		return "", errors.E("render dnsmasq config", errors.IO, err)
	}
	return buf.String(), nil
}
