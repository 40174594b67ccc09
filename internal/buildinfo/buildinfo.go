package buildinfo

const Graffiti = " _____ ___________ _____ _   _ \n/  ___|_   _| ___ \\  ___| \\ | |\n\\ `--.  | | | |_/ / |__ |  \\| |\n `--. \\ | | |    /|  __|| . ` |\n/\\__/ /_| |_| |\\ \\| |___| |\\  |\n\\____/ \\___/\\_| \\_\\____/\\_| \\_/\n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "SIREN"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
