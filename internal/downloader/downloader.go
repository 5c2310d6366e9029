package downloader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// DownloadFile downloads a file from a URL to a local path.
func DownloadFile(filepath string, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file from %s: %s", url, resp.Status)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// FetchIfMissing downloads a boot payload unless it is already present. An
// already-downloaded payload is reported as success, not an error.
var FetchIfMissing = func(path, url string) error {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Checking for boot payload at %s...", url)
	s.Start()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.Suffix = fmt.Sprintf(color.CyanString(" Downloading boot payload from %s..."), url)
		if err := DownloadFile(path, url); err != nil {
			s.Stop()
			fmt.Printf("%s %s\n", color.RedString("✖"), s.Suffix)
			return err
		}
		s.Stop()
		fmt.Printf("%s %s\n", color.GreenString("✔"), strings.TrimLeft(s.Suffix, " "))
	} else {
		s.Stop()
		fmt.Printf("%s %s\n", color.GreenString("✔"), s.Suffix)
	}
	return nil
}
