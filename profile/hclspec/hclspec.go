package hclspec

type Profile struct {
	InstallRoot string   `hcl:"install_root,optional"`
	JavaPath    string   `hcl:"java_path,optional"`
	Username    string   `hcl:"username,optional"`
	Memory      int      `hcl:"memory,optional"`
	Mirror      int      `hcl:"mirror,optional"`
	Mirrors     []string `hcl:"mirrors,optional"`
	Workers     int      `hcl:"workers,optional"`
	Attempts    int      `hcl:"attempts,optional"`
}

// Report lists digests of every installed artifact of a version.
type Report struct {
	Version string `hcl:"version,attr"`
	Files   []File `hcl:"file,block"`
}

type File struct {
	Path string   `hcl:"path,label"`
	Sums []string `hcl:"sums,attr"`
}
