package op_service

// FormatVersion joins the release version with the short commit, commit date
// and build meta, skipping the parts that are empty.
func FormatVersion(version string, gitCommit string, gitDate string, meta string) string {
	v := version
	if gitCommit != "" {
		v += "-" + gitCommit[:min(len(gitCommit), 8)]
	}
	if gitDate != "" {
		v += "-" + gitDate
	}
	if meta != "" {
		v += "-" + meta
	}
	return v
}
