package database

type Config struct {
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
	Driver      string
	Environment string
}

// DSN renders the connection URL. SSLMode is appended verbatim, e.g. "?sslmode=disable".
func (c Config) DSN() string {
	return c.Driver + "://" + c.User + ":" + c.Password + "@" +
		c.Host + ":" + c.Port + "/" + c.Database + c.SSLMode
}
