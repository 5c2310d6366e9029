package menu

import (
	"bytes"
	"fmt"
	"text/template"

	"pxelab/internal/classify"
	"pxelab/internal/errors"
	"pxelab/internal/netutil"
)

// Entry is one classified medium ready to be rendered into boot stanzas.
type Entry struct {
	Name   string
	Server *netutil.Params
	// Kernel and Initrd are TFTP-relative paths.
	Kernel string
	Initrd string
	// Root is the exported directory the client NFS-mounts.
	Root    string
	Variant classify.Variant
	Kind    classify.TargetKind
}

// ImageEntry is a raw boot image, served whole through memdisk.
type ImageEntry struct {
	Name string
	// Image is the TFTP-relative path of the image link.
	Image string
}

// The Arch parameters are provisional: they have not been validated against
// a live Arch ISO yet.
const archStanza = `LABEL {{ .Label }}
	MENU LABEL {{ .Name }} (Arch)
	KERNEL {{ .Kernel }}
	INITRD {{ .Initrd }}
	APPEND archisobasedir=arch archiso_nfs_srv={{ .Address }}:{{ .Root }} ip=dhcp

`

const debianLiveStanza = `LABEL {{ .Label }}
	MENU LABEL {{ .Name }} (Debian Live)
	KERNEL {{ .Kernel }}
	INITRD {{ .Initrd }}
	APPEND root=/dev/nfs netboot=nfs nfsroot={{ .Address }}:{{ .Root }} boot=live ip=dhcp

`

const ubuntuStanza = `LABEL {{ .Label }}{{ if .Keymap }}-{{ .Keymap }}{{ end }}
	MENU LABEL {{ .Name }}{{ if .Keymap }} [{{ .Keymap }}]{{ end }}
	KERNEL {{ .Kernel }}
	INITRD {{ .Initrd }}
	APPEND root=/dev/nfs netboot=nfs nfsroot={{ .Address }}:{{ .Root }} boot=casper ip=dhcp{{ if .Keymap }} keyboard-configuration/layoutcode={{ .Keymap }}{{ end }}

`

const imageStanza = `LABEL {{ .Label }}
	MENU LABEL {{ .Name }} (raw image)
	KERNEL memdisk
	INITRD {{ .Image }}
	APPEND raw

`

var (
	archTmpl       = template.Must(template.New("arch").Parse(archStanza))
	debianLiveTmpl = template.Must(template.New("debian-live").Parse(debianLiveStanza))
	ubuntuTmpl     = template.Must(template.New("ubuntu").Parse(ubuntuStanza))
	imageTmpl      = template.Must(template.New("image").Parse(imageStanza))
)

type stanzaData struct {
	Label   string
	Name    string
	Kernel  string
	Initrd  string
	Address string
	Root    string
	Keymap  string
	Image   string
}

// Render turns a classified entry into boot menu text. Ubuntu and unknown
// media get one stanza per requested keymap so multiple keyboard layouts for
// the same medium coexist in the menu without label collisions.
func Render(e *Entry, keymaps []string) (string, error) {
	data := stanzaData{
		Label:   classify.MenuLabel(e.Name),
		Name:    e.Name,
		Kernel:  e.Kernel,
		Initrd:  e.Initrd,
		Address: e.Server.Address,
		Root:    e.Root,
	}

	switch e.Variant {
	case classify.Arch:
		return execute(archTmpl, data)
	case classify.DebianLive:
		return execute(debianLiveTmpl, data)
	default:
		if len(keymaps) == 0 {
			return execute(ubuntuTmpl, data)
		}
		var out bytes.Buffer
		for _, km := range keymaps {
			data.Keymap = km
			s, err := execute(ubuntuTmpl, data)
			if err != nil {
				return "", err
			}
			out.WriteString(s)
		}
		return out.String(), nil
	}
}

// RenderImage turns a raw image entry into a memdisk boot stanza.
func RenderImage(e *ImageEntry) (string, error) {
	return execute(imageTmpl, stanzaData{
		Label: classify.MenuLabel(e.Name),
		Name:  e.Name,
		Image: e.Image,
	})
}

func execute(t *template.Template, data stanzaData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.E(fmt.Sprintf("render %s stanza", t.Name()), errors.IO, err)
	}
	return buf.String(), nil
}
