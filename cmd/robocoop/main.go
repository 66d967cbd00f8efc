package main

import (
	"log"
	"os"

	"robocoop"
	"robocoop/challenge"
	"robocoop/config"
	"robocoop/plugins"
	"robocoop/reminder"
	"robocoop/store"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	name     = "robocoop"
	greeting = "I am Robocoop. Serve the swole. Protect the jacked. Uphold the gainz."
)

func main() {
	// A missing .env file is fine, the token can come from the environment directly
	godotenv.Load()

	v := config.NewViperWithDefaults()
	v.SetConfigName(name)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error loading configuration file: %v", err)
		}
	}

	v.BindEnv(config.TokenKey, "TOKEN")

	if v.GetString(config.TokenKey) == "" {
		log.Println("Error: Specify token in environment")
		os.Exit(1)
	}

	logger := robocoop.NewSLogger(log.New(os.Stdout, name+": ", log.Lshortfile|log.LstdFlags), v.GetBool(config.DebugKey))

	storer, err := store.NewLevelDB(name, v.GetString(config.StoragePathKey))
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}
	defer storer.Close()

	challengeStore := challenge.NewStore(storer, logger)
	reminders := reminder.New(challengeStore, config.GetReminderLocation(v), logger)

	fitness, err := plugins.NewFitness(config.GetPluginConfig(v, plugins.FitnessPluginName), challengeStore, reminders)
	if err != nil {
		log.Fatalf("Error initializing fitness plugin: %v", err)
	}

	// On (re)connection, load the persisted challenge for the workspace and
	// re-arm reminders if a frequency was set before the last shutdown
	onConnected := func(teamID string, sender robocoop.MessageSender) {
		challengeStore.Load(teamID)

		st := challengeStore.State()
		if st.Active() && st.ReminderFrequency != challenge.Never {
			reminders.Arm(sender, st.ReminderFrequency)
		}
	}

	bot, err := robocoop.NewBot(name, v, robocoop.OptionGreeting(greeting), robocoop.OptionOnConnected(onConnected)).
		WithPlugin(&fitness.Plugin).
		Build()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	if err := bot.Run(); err != nil {
		log.Fatalf("Error running bot: %v", err)
	}
}
