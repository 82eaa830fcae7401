package emitter

import "path"

// Output locations relative to the output root.
const (
	CoursePath          = "course.xml"
	CourseStructurePath = "course/course.xml"
	StaticDir           = "static"
	OverviewPath        = "about/overview.html"
	AssetsXMLPath       = "assets/assets.xml"
	AssetsJSONPath      = "policies/assets.json"
	GradingPolicyPath   = "policies/course/grading_policy.json"
	PolicyPath          = "policies/course/policy.json"
)

func ChapterPath(id string) string    { return path.Join("chapter", id+".xml") }
func SequentialPath(id string) string { return path.Join("sequential", id+".xml") }
func VerticalPath(id string) string   { return path.Join("vertical", id+".xml") }
func HTMLPath(id string) string       { return path.Join("html", id+".xml") }
func HTMLBodyPath(id string) string   { return path.Join("html", id+".html") }
func VideoPath(id string) string      { return path.Join("video", id+".xml") }
func ProblemPath(id string) string    { return path.Join("problem", id+".xml") }
func StaticPath(name string) string   { return path.Join(StaticDir, name) }

// staticDocs are written once per run with no variables.
var staticDocs = []struct {
	template string
	path     string
}{
	{TemplateOverview, OverviewPath},
	{TemplateAssetsXML, AssetsXMLPath},
	{TemplateAssetsJSON, AssetsJSONPath},
	{TemplateGradingPolicy, GradingPolicyPath},
	{TemplatePolicy, PolicyPath},
}
