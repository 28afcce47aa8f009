package github

import "time"

// RepositoryNode is one fully-resolved repository returned by a topic
// search, with its vulnerability alerts and open pull requests already
// attached. Field values are normalized: severities and states are
// upper-case, severity "MEDIUM" is reported as "MODERATE".
type RepositoryNode struct {
	ID                  string
	Name                string // full "owner/name"
	URL                 string
	Owner               string
	VulnerabilityAlerts []VulnerabilityAlert
	PullRequests        []PullRequestNode
}

// VulnerabilityAlert is one vulnerability alert attached to a repository.
type VulnerabilityAlert struct {
	ID                  string
	State               string
	PackageName         string
	Severity            string
	FirstPatchedVersion *string
}

// PullRequestNode is one pull request attached to a repository.
type PullRequestNode struct {
	ID       string
	Title    string
	URL      string
	State    string
	Author   string
	MergedAt *time.Time
}
