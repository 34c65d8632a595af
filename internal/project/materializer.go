package project

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
)

// ArtifactFile is the generated artifact's name inside every project.
const ArtifactFile = "index.html"

// Attachment is a caller-supplied extra file, delivered as an inline data URI.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Input carries everything the materializer needs to lay out one round's
// files in the staging area.
type Input struct {
	Artifact    string
	Round       int
	Task        string
	Brief       string
	Owner       string // account that will own the repository; named in LICENSE
	Checks      []string
	Attachments []Attachment
}

// Materializer turns a generation result into files on a staging directory.
type Materializer struct {
	log logger.Logger
}

func NewMaterializer(log logger.Logger) *Materializer {
	return &Materializer{log: log.With("component", "materializer")}
}

// Materialize writes the artifact, README, LICENSE and decoded attachments
// under dir and returns the names written. The artifact is always
// (over)written. Round 1 writes a fresh README and LICENSE; later rounds
// append a dated update section to the existing README instead, never
// destroying prior content. A malformed attachment is skipped and logged,
// never fatal to the round.
func (m *Materializer) Materialize(dir string, in Input) ([]string, error) {
	written := make([]string, 0, 3+len(in.Attachments))

	if err := os.WriteFile(filepath.Join(dir, ArtifactFile), []byte(in.Artifact), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ArtifactFile, err)
	}
	written = append(written, ArtifactFile)

	if in.Round <= 1 {
		if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readmeContent(in)), 0o644); err != nil {
			return nil, fmt.Errorf("write README.md: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "LICENSE"), []byte(licenseContent(in.Owner)), 0o644); err != nil {
			return nil, fmt.Errorf("write LICENSE: %w", err)
		}
		written = append(written, "README.md", "LICENSE")
	} else {
		if err := appendRoundSection(filepath.Join(dir, "README.md"), in.Round, in.Brief); err != nil {
			return nil, fmt.Errorf("append round section to README.md: %w", err)
		}
		written = append(written, "README.md")
	}

	written = append(written, m.writeAttachments(dir, in.Attachments)...)
	return written, nil
}

// writeAttachments decodes and stores each attachment under its declared
// name. Names escaping the staging directory are rejected per entry.
func (m *Materializer) writeAttachments(dir string, attachments []Attachment) []string {
	var written []string
	for _, att := range attachments {
		target, err := securePath(dir, att.Name)
		if err != nil {
			m.log.Warn("rejecting attachment name", "name", att.Name, "error", err)
			continue
		}
		data, err := decodeDataURI(att.URL)
		if err != nil {
			m.log.Warn("skipping malformed attachment", "name", att.Name, "error", err)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			m.log.Warn("failed to create attachment directory", "name", att.Name, "error", err)
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			m.log.Warn("failed to write attachment", "name", att.Name, "error", err)
			continue
		}
		written = append(written, att.Name)
	}
	return written
}

// securePath resolves name inside dir, rejecting absolute names and any
// traversal that would land outside the staging directory.
func securePath(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty attachment name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute attachment name %q", name)
	}
	target := filepath.Join(dir, filepath.Clean(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("attachment name %q escapes the staging directory", name)
	}
	return target, nil
}

// decodeDataURI extracts the base64 payload of an inline data URI.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, apperrors.New(apperrors.CodeBadRequest, "attachment url is not a data URI")
	}
	marker := ";base64,"
	idx := strings.Index(uri, marker)
	if idx < 0 {
		return nil, apperrors.New(apperrors.CodeBadRequest, "attachment data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(uri[idx+len(marker):])
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return data, nil
}

func appendRoundSection(readmePath string, round int, brief string) error {
	f, err := os.OpenFile(readmePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	section := fmt.Sprintf("\n\n---\n\n### Round %d Update (%s)\n\n> *%q*\n",
		round, time.Now().UTC().Format("2006-01-02"), brief)
	_, err = f.WriteString(section)
	return err
}

func readmeContent(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# LLM Code Deployment Project: %s\n\n", in.Task)
	b.WriteString("This project was automatically generated and deployed in response to the following brief:\n\n")
	fmt.Fprintf(&b, "> *%q*\n\n", in.Brief)
	b.WriteString("The application is a single self-contained `index.html` served via static hosting. " +
		"To run it locally, open `index.html` in a browser or serve the directory with any static file server.\n")

	if len(in.Attachments) > 0 {
		b.WriteString("\n## Included Files\n\n")
		for _, att := range in.Attachments {
			fmt.Fprintf(&b, "- `%s`\n", att.Name)
		}
	}

	if len(in.Checks) > 0 {
		b.WriteString("\n## Evaluation Checks\n\n")
		for _, check := range in.Checks {
			fmt.Fprintf(&b, "- %s\n", check)
		}
	}

	b.WriteString("\n## License\n\nReleased under the MIT License. See the `LICENSE` file.\n")
	return b.String()
}

func licenseContent(owner string) string {
	return fmt.Sprintf(`MIT License

Copyright (c) %d %s

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`, time.Now().Year(), owner)
}
