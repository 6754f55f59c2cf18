package main

import (
	"context"
	"fmt"

	"github.com/yevheniigera/dialogflow-fulfillment/fulfillment"
)

const transferContext = "transfer"

func intents() fulfillment.IntentMap {
	return fulfillment.IntentMap{}.
		Handle("Default Welcome Intent", welcome).
		Handle("Default Fallback Intent", fallback).
		Handle("Transfer", transfer)
}

func welcome(_ context.Context, agent *fulfillment.Agent) error {
	agent.Add("Welcome! How can I help you?")
	return nil
}

func fallback(_ context.Context, agent *fulfillment.Agent) error {
	agent.ClearFulfillments()
	agent.Add("Sorry, I didn't get that.", "Can you say that again?")
	return nil
}

func transfer(_ context.Context, agent *fulfillment.Agent) error {
	name, ok := agent.Parameter("name")
	if !ok || name.GetStringValue() == "" {
		agent.Add("Ok. I cannot connect you right now")
		return nil
	}

	agent.ClearFulfillments()
	agent.Add(fmt.Sprintf("%s is busy. Talk to me", name.GetStringValue()))

	c, err := agent.NewContext(transferContext, 2, map[string]any{"name": name.GetStringValue()})
	if err != nil {
		return err
	}
	agent.AddContext(c)

	return nil
}
