package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Duel   DuelConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	duelCfg, err := LoadDuel()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Duel:   duelCfg,
	}, nil
}
