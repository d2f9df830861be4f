package model

// Framework 前端框架热度数据
type Framework struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	GithubRepo   string `db:"github_repo" json:"github_repo"` // owner/repo 形式
	NpmPackage   string `db:"npm_package" json:"npm_package"`
	StarCount    int64  `db:"star_count" json:"star"`
	NpmDownloads int64  `db:"npm_downloads" json:"npmDownload"`
}
