package database

// Resolve fills every absent or empty field of in from defaults.
// Fields are merged one by one, so a caller may override only the database.
func Resolve(in ConnectionInput, defaults DatabaseConfig) DatabaseConfig {
	out := defaults

	if in.Driver != "" {
		out.Driver = in.Driver
	}
	if in.Host != "" {
		out.Host = in.Host
	}
	if in.Port != 0 {
		out.Port = int(in.Port)
	}
	if in.User != "" {
		out.Username = in.User
	}
	if in.Password != "" {
		out.Password = in.Password
	}
	if in.Database != "" {
		out.Database = in.Database
	}
	if in.SSLMode != "" {
		out.SSLMode = in.SSLMode
	}

	return out
}
