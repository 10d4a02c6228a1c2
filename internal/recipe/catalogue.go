package recipe

import "github.com/hammamikhairi/simmr/internal/domain"

// Catalogue returns the built-in recipes, one or more per category. Each
// call returns fresh copies.
func Catalogue() []domain.Recipe {
	return []domain.Recipe{
		creamyChickenPasta(),
		rainbowPizzaBagels(),
		tacoNightBar(),
		bakedFetaPasta(),
		beefWellington(),
		threeIngredientPancakes(),
		chocolateMugCake(),
		lemonHerbSalmon(),
	}
}

func creamyChickenPasta() domain.Recipe {
	return domain.Recipe{
		ID:    "creamy-chicken-pasta",
		Title: "Creamy Chicken Pasta",
		Ingredients: domain.RawEntries(
			"Pasta:8 oz",
			"Chicken:2 breasts",
			"Salt:1 pinch",
			"Pepper:1/2 tsp",
			"Garlic:2 cloves",
			"Butter:1 tbsp",
			"Cream:1 cup",
		),
		Instructions:    "Boil pasta, sear seasoned chicken, simmer in cream and toss together.",
		Category:        domain.CategoryBrowse,
		Difficulty:      domain.DifficultyEasy,
		Restriction:     domain.RestrictionNutFree,
		NumServings:     "2",
		CookTimeMinutes: 30,
		StoryTone:       domain.ToneCozy,
		Steps: []domain.Step{
			{
				Order:       1,
				Instruction: "Boil a pot of water with a pinch of salt for your pasta.",
				Story:       "As the water begins to warm, take a long breath in and a slow breath out. Self-care often starts like this pot: small, quiet, subtle beginnings.",
			},
			{
				Order:       2,
				Instruction: "Slice your chicken and season with salt, pepper, and a little garlic.",
				Story:       "Every step has intention. Self-care is the same; not grand, not dramatic, just small choices that say I'm worth taking care of.",
			},
			{
				Order:       3,
				Instruction: "Sear the chicken in a pan with butter or oil until golden.",
				Story:       "When things heat up, remember: pressure doesn't mean you're failing. Like the pan, a little heat creates flavor and change.",
			},
			{
				Order:       4,
				Instruction: "Pour in your heavy cream (1 cup) and stir gently.",
				Story:       "Cream brings everything together: rich, soft, smooth. Think of this as the moment you soften too. Tonight your inner voice can be gentle.",
			},
			{
				Order:       5,
				Instruction: "Add the pasta, a splash of pasta water, and stir until it all comes together.",
				Story:       "Some days feel scattered. But like this dish, everything can come back together with a little warmth and movement. You don't need perfection, just presence.",
			},
		},
		Version: 1,
	}
}

func rainbowPizzaBagels() domain.Recipe {
	return domain.Recipe{
		ID:    "rainbow-pizza-bagels",
		Title: "Rainbow Pizza Bagels",
		Ingredients: domain.RawEntries(
			"Bagels:4",
			"Tomato Sauce:1/2 cup",
			"Cheese:1 cup shredded",
			"Bell Peppers:1, diced",
			"Spinach:1 handful",
		),
		Instructions:    "Top halved bagels with sauce, cheese and colourful veggies, then bake.",
		Category:        domain.CategoryKids,
		Difficulty:      domain.DifficultyEasy,
		Restriction:     domain.RestrictionVegetarian,
		KidFriendly:     true,
		NumServings:     "4",
		CookTimeMinutes: 15,
		StoryTone:       domain.ToneHumorous,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Heat the oven to 200C and split the bagels.", Story: "The oven is warming up like a dragon clearing its throat."},
			{Order: 2, Instruction: "Spread sauce on each half and sprinkle the cheese.", Story: "Little chefs get full sauce authority. Edges are optional."},
			{Order: 3, Instruction: "Add peppers and spinach in rainbow stripes.", Story: "Red, green, more green. Art critics are already weeping."},
			{Order: 4, Instruction: "Bake for 8 minutes until the cheese bubbles.", Story: "Watch the cheese do its happy bubbling dance."},
		},
		Version: 1,
	}
}

func tacoNightBar() domain.Recipe {
	return domain.Recipe{
		ID:    "taco-night-bar",
		Title: "Taco Night Bar",
		Ingredients: domain.RawEntries(
			"Beef:1 lb ground",
			"Tortillas:12",
			"Lettuce:1 head",
			"Tomatoes:2",
			"Cheese:1 cup",
			"Sour Cream:1/2 cup",
			"Cumin:1 tsp",
			"Paprika:1 tsp",
		),
		Instructions:    "Brown spiced beef, set out toppings and let everyone build their own.",
		Category:        domain.CategoryFriends,
		Difficulty:      domain.DifficultyEasy,
		Restriction:     domain.RestrictionNone,
		NumServings:     "6",
		CookTimeMinutes: 25,
		StoryTone:       domain.ToneAdventure,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Brown the beef with cumin and paprika.", Story: "The expedition begins with a sizzle and a cloud of spice."},
			{Order: 2, Instruction: "Shred the lettuce and dice the tomatoes.", Story: "Every explorer needs supplies. Chop them like a map-maker."},
			{Order: 3, Instruction: "Warm the tortillas and set out every topping.", Story: "Base camp is ready. Let the crew choose their own trail."},
		},
		Version: 1,
	}
}

func bakedFetaPasta() domain.Recipe {
	return domain.Recipe{
		ID:    "baked-feta-pasta",
		Title: "Baked Feta Pasta",
		Ingredients: domain.RawEntries(
			"Feta:7 oz block",
			"Cherry Tomatoes:2 pints",
			"Olive Oil:1/4 cup",
			"Garlic:3 cloves",
			"Pasta:10 oz",
			"Basil:1 handful",
		),
		Instructions:    "Roast feta with tomatoes, smash into a sauce and fold through pasta.",
		Category:        domain.CategoryTikTok,
		Difficulty:      domain.DifficultyEasy,
		Restriction:     domain.RestrictionVegetarian,
		NumServings:     "4",
		CookTimeMinutes: 40,
		StoryTone:       domain.ToneMystery,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Put the feta in a dish surrounded by tomatoes, garlic and olive oil.", Story: "A white block sits in the centre of the scene. Nobody knows what it will become."},
			{Order: 2, Instruction: "Roast for 30 minutes while the pasta boils.", Story: "The tomatoes start to crack. A clue, perhaps."},
			{Order: 3, Instruction: "Smash everything together, add the pasta and basil.", Story: "The case is closed: it was creamy all along."},
		},
		Version: 1,
	}
}

func beefWellington() domain.Recipe {
	return domain.Recipe{
		ID:    "beef-wellington",
		Title: "Beef Wellington",
		Ingredients: domain.RawEntries(
			"Beef:2 lb tenderloin",
			"Puff Pastry:1 sheet",
			"Mushrooms:1 lb",
			"Prosciutto:8 slices",
			"Mustard:2 tbsp",
			"Eggs:1",
			"Thyme:2 sprigs",
		),
		Instructions:    "Sear, wrap in duxelles and prosciutto, encase in pastry and bake.",
		Category:        domain.CategoryChallenge,
		Difficulty:      domain.DifficultyHard,
		Restriction:     domain.RestrictionNone,
		NumServings:     "4-6",
		CookTimeMinutes: 120,
		StoryTone:       domain.ToneEducational,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Sear the tenderloin on all sides and brush with mustard.", Story: "Searing builds a Maillard crust: proteins and sugars reacting above 140C."},
			{Order: 2, Instruction: "Cook the mushrooms and thyme down to a dry paste.", Story: "Duxelles must be dry, or steam will make the pastry soggy."},
			{Order: 3, Instruction: "Wrap the beef in prosciutto and duxelles, then chill.", Story: "Chilling firms the layers so the pastry holds its shape."},
			{Order: 4, Instruction: "Encase in pastry, brush with egg and bake at 200C for 40 minutes.", Story: "Egg wash browns through the same Maillard reaction as the sear."},
		},
		Version: 1,
	}
}

func threeIngredientPancakes() domain.Recipe {
	return domain.Recipe{
		ID:    "banana-pancakes",
		Title: "Three Ingredient Banana Pancakes",
		Ingredients: domain.RawEntries(
			"Bananas:2 ripe",
			"Eggs:2",
			"Cinnamon:1 pinch",
		),
		Instructions:    "Mash, whisk and fry small pancakes.",
		Category:        domain.CategoryThreeBites,
		Difficulty:      domain.DifficultyEasy,
		Restriction:     domain.RestrictionGlutenFree,
		KidFriendly:     true,
		NumServings:     "2",
		CookTimeMinutes: 10,
		StoryTone:       domain.ToneCozy,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Mash the bananas until smooth.", Story: "Slow morning. Nothing to rush."},
			{Order: 2, Instruction: "Whisk in the eggs and cinnamon.", Story: "The kitchen starts to smell like a Sunday."},
			{Order: 3, Instruction: "Fry spoonfuls in a buttered pan, flipping once.", Story: "Small, golden, warm. Exactly enough."},
		},
		Version: 1,
	}
}

func chocolateMugCake() domain.Recipe {
	return domain.Recipe{
		ID:    "chocolate-mug-cake",
		Title: "Chocolate Mug Cake",
		Ingredients: domain.RawEntries(
			"Flour:4 tbsp",
			"Sugar:3 tbsp",
			"Cocoa:2 tbsp",
			"Milk:3 tbsp",
			"Vegetable Oil:2 tbsp",
		),
		Instructions:    "Stir everything in a mug and microwave.",
		Category:        domain.CategorySweets,
		Difficulty:      domain.DifficultyEasy,
		Restriction:     domain.RestrictionNutFree,
		NumServings:     "1",
		CookTimeMinutes: 5,
		StoryTone:       domain.ToneRomantic,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Whisk the dry ingredients in a large mug.", Story: "One mug, one spoon, one quiet moment for you."},
			{Order: 2, Instruction: "Stir in milk and oil until smooth.", Story: "Dark and glossy, like a secret shared."},
			{Order: 3, Instruction: "Microwave for 70 seconds and let it rest a minute.", Story: "Sweet things are worth the short wait."},
		},
		Version: 1,
	}
}

func lemonHerbSalmon() domain.Recipe {
	return domain.Recipe{
		ID:    "lemon-herb-salmon",
		Title: "Lemon Herb Salmon",
		Ingredients: domain.RawEntries(
			"Fish:2 salmon fillets",
			"Lemon:1",
			"Olive Oil:1 tbsp",
			"Rosemary:1 sprig",
			"Potatoes:1 lb",
		),
		Instructions:    "Roast potatoes, then bake salmon with lemon and herbs on top.",
		Category:        domain.CategoryBrowse,
		Difficulty:      domain.DifficultyMedium,
		Restriction:     domain.RestrictionGlutenFree,
		NumServings:     "2",
		CookTimeMinutes: 35,
		StoryTone:       domain.ToneRomantic,
		Steps: []domain.Step{
			{Order: 1, Instruction: "Toss potato wedges in oil and roast for 20 minutes.", Story: "Set the table while the oven does the work."},
			{Order: 2, Instruction: "Lay the salmon on the tray with lemon slices and rosemary.", Story: "A little brightness, a little green."},
			{Order: 3, Instruction: "Bake 12 minutes until the salmon flakes.", Story: "Dinner for two, just as it should be."},
		},
		Version: 1,
	}
}
