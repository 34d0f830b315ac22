package api

import "embed"

//go:embed static/dashboard.html
var staticFS embed.FS

const dashboardPage = "static/dashboard.html"
