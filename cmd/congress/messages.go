package main

const (
	msgLoading   = "loading events and ratings from cache...\n"
	msgNoEvents  = "\nNo events found! Run `fetch` operation to load events from API.\n"
	msgNoRatings = "\nNo ratings found! Run `rate` operation to rate events.\n"
	msgNoRated   = "\nNo ratings or events found! Do the following:" +
		"\n1. Run `fetch` operation to load events from API." +
		"\n2. Run `rate` operation to rate events." +
		"\n3. Run `ratings` operation to check your ratings.\n"
	msgNothingToRate = "\nNo new events to rate. Exiting.\n"
)
