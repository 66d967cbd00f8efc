// Package robocoop provides the engine for a slack bot that runs team fitness
// challenges. The engine connects to slack, routes incoming messages to the
// commands and hear actions of registered plugins and drives their scheduled
// actions. The challenge logic itself lives in the challenge, reminder and
// plugins packages.
package robocoop

// Version is the engine version, reported by the help command
const Version = "1.0.0"
