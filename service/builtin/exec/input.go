package exec

// Host identifies the machine commands run on. An empty URL or a
// localhost URL selects local execution, anything else goes over ssh.
type Host struct {
	URL         string `json:"url,omitempty" description:"host url, e.g. ssh://host:22 or bash://localhost"`
	Credentials string `json:"credentials,omitempty" description:"scy credentials resource for remote hosts"`
}

// Input represents a command execution request
type Input struct {
	Host         *Host             `json:"host,omitempty" description:"host to execute command on" internal:"true"`
	Directory    string            `json:"directory,omitempty" description:"working directory commands start in"`
	Env          map[string]string `json:"env,omitempty" description:"environment variables set before commands run"`
	Commands     []string          `json:"commands,omitempty" description:"commands to execute on the target host"`
	TimeoutMs    int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty" description:"max wait time before timing out a command"`
	AbortOnError *bool             `json:"abortOnError,omitempty" description:"stop at the first command with a non zero status"`
}

func (i *Input) Init() {
	if i.Host == nil {
		i.Host = &Host{}
	}
	if i.Host.URL == "" {
		i.Host.URL = "bash://localhost/"
	}
}
