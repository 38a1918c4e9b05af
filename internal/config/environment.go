package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases binds each key to its canonical variable followed by the names
// used by older deployments. The first non-empty variable wins.
var envAliases = map[string][]string{
	"server.port":            {"SERVER_PORT", "PORT"},
	"mongodb.uri":            {"MONGODB_URI", "MONGO_URL"},
	"cors.consoleorigins":    {"CORS_CONSOLEORIGINS", "CONSOLE_APIS_ALLOWED_ORIGIN"},
	"cors.adminorigins":      {"CORS_ADMINORIGINS", "ADMIN_APIS_ALLOWED_ORIGIN"},
	"geoip.downloadurl":      {"GEOIP_DOWNLOADURL", "MAXMIND_DB_URL"},
	"geoip.licensekey":       {"GEOIP_LICENSEKEY", "MAXMIND_LICENSE_KEY"},
	"mailer.host":            {"MAILER_HOST"},
	"mailer.port":            {"MAILER_PORT"},
	"mailer.username":        {"MAILER_USERNAME", "MAILER_EMAIL"},
	"mailer.password":        {"MAILER_PASSWORD"},
	"mailer.from":            {"MAILER_FROM", "MAILER_EMAIL"},
	"mailer.mock":            {"MAILER_MOCK"},
	"admin.apikey":           {"ADMIN_APIKEY", "ADMIN_API_KEY"},
	"apps.maxperuser":        {"APPS_MAXPERUSER", "TOTAL_ALLOWED_USER_APPS"},
	"jwt.privatekeypath":     {"JWT_PRIVATEKEYPATH", "JWT_PRIVATE_KEY_PATH"},
	"jwt.publickeypath":      {"JWT_PUBLICKEYPATH", "JWT_PUBLIC_KEY_PATH"},
	"server.trustedproxies":  {"SERVER_TRUSTEDPROXIES", "TRUSTED_PROXIES"},
	"server.shutdowntimeout": {"SERVER_SHUTDOWNTIMEOUT"},
}

// loadEnvFile loads a .env file into the process environment when one exists.
// Variables already set are left untouched.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func bindEnvAliases(v *viper.Viper) error {
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}
	return nil
}
