package checkout

// WithSleep expone withSleep a los tests externos.
var WithSleep = withSleep
